package domain

import "errors"

// AttackMode is the hashcat -a value of a task
type AttackMode int

const (
	AttackModeStraight           AttackMode = 0
	AttackModeCombination        AttackMode = 1
	AttackModeBruteForce         AttackMode = 3
	AttackModeHybridWordlistMask AttackMode = 6
	AttackModeHybridMaskWordlist AttackMode = 7
)

var ErrInvalidAttackMode = errors.New("invalid attack mode")

// AttackModes lists the supported modes in selector order
var AttackModes = []AttackMode{
	AttackModeStraight,
	AttackModeCombination,
	AttackModeBruteForce,
	AttackModeHybridWordlistMask,
	AttackModeHybridMaskWordlist,
}

func (m AttackMode) IsValid() bool {
	switch m {
	case AttackModeStraight, AttackModeCombination, AttackModeBruteForce,
		AttackModeHybridWordlistMask, AttackModeHybridMaskWordlist:
		return true
	}
	return false
}

func (m AttackMode) String() string {
	switch m {
	case AttackModeStraight:
		return "Straight (Dictionary)"
	case AttackModeCombination:
		return "Combination"
	case AttackModeBruteForce:
		return "Brute-force (Mask)"
	case AttackModeHybridWordlistMask:
		return "Hybrid Wordlist + Mask"
	case AttackModeHybridMaskWordlist:
		return "Hybrid Mask + Wordlist"
	}
	return "Unknown"
}

// UsesWordlist reports whether the mode reads a wordlist file
func (m AttackMode) UsesWordlist() bool {
	switch m {
	case AttackModeStraight, AttackModeCombination,
		AttackModeHybridWordlistMask, AttackModeHybridMaskWordlist:
		return true
	}
	return false
}

// UsesRules reports whether the mode accepts a rule file
func (m AttackMode) UsesRules() bool {
	return m == AttackModeStraight
}

// UsesMask reports whether the mode takes a mask
func (m AttackMode) UsesMask() bool {
	switch m {
	case AttackModeBruteForce, AttackModeHybridWordlistMask, AttackModeHybridMaskWordlist:
		return true
	}
	return false
}
