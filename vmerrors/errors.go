package vmerrors

import (
	"errors"
	"strings"
)

// Machine (M) Errors. These are fatal: the machine panics with a Fault wrapping one of them.
var (
	ErrMUnknownOpcode     = errors.New("M1|UnknownOpcode: Instruction word carries an opcode outside the active instruction set.")
	ErrMUnknownMode       = errors.New("M2|UnknownMode: Operand addressing mode is not position, immediate or relative.")
	ErrMNegativeAddress   = errors.New("M3|NegativeAddress: Computed address is negative.")
	ErrMAddressOutOfRange = errors.New("M4|AddressOutOfRange: Computed address is beyond memory capacity.")
	ErrMImmediateWrite    = errors.New("M5|ImmediateWrite: Write operand uses immediate mode.")
)

// Program (P) Errors
var (
	ErrPInvalidWord  = errors.New("P1|InvalidWord: Program listing contains a token that is not a 64-bit integer.")
	ErrPEmptyProgram = errors.New("P2|EmptyProgram: Program listing contains no words.")
)

// Scheduler (S) Errors
var (
	ErrSDeadlock    = errors.New("S1|Deadlock: Every live task is blocked on input and no data moved in a full round.")
	ErrSUnknownTask = errors.New("S2|UnknownTask: Task name is not registered with the scheduler.")
	ErrSNoSignal    = errors.New("S3|NoSignal: Amplifier pipeline halted without producing a signal.")
)

// Springscript (X) Errors
var (
	ErrXUnknownInstruction  = errors.New("X1|UnknownInstruction: Springscript line is not AND, OR, NOT, WALK or RUN.")
	ErrXBadRegister         = errors.New("X2|BadRegister: Register is not available in this mode.")
	ErrXReadOnlyTarget      = errors.New("X3|ReadOnlyTarget: Second operand must be T or J.")
	ErrXTooManyInstructions = errors.New("X4|TooManyInstructions: Springscript holds more than 15 instructions.")
	ErrXFellIntoSpace       = errors.New("X5|FellIntoSpace: Droid fell into space instead of reporting hull damage.")
)

// Storage (D) Errors
var (
	ErrDSnapshotNotFound = errors.New("D1|SnapshotNotFound: No snapshot stored under this name.")
	ErrDSnapshotCorrupt  = errors.New("D2|SnapshotCorrupt: Stored snapshot does not match its digest.")
)

var catalogue = []error{
	ErrMUnknownOpcode, ErrMUnknownMode, ErrMNegativeAddress, ErrMAddressOutOfRange, ErrMImmediateWrite,
	ErrPInvalidWord, ErrPEmptyProgram,
	ErrSDeadlock, ErrSUnknownTask, ErrSNoSignal,
	ErrXUnknownInstruction, ErrXBadRegister, ErrXReadOnlyTarget, ErrXTooManyInstructions, ErrXFellIntoSpace,
	ErrDSnapshotNotFound, ErrDSnapshotCorrupt,
}

// Lookup returns the catalogue sentinel err wraps, or nil.
func Lookup(err error) error {
	for _, s := range catalogue {
		if errors.Is(err, s) {
			return s
		}
	}
	return nil
}

func text(err error) string {
	if s := Lookup(err); s != nil {
		return s.Error()
	}
	return err.Error()
}

// GetErrorName extracts the error name from the error message.
func GetErrorName(err error) string {
	if err == nil {
		return "No Error"
	}
	errStr := text(err)
	if !strings.Contains(errStr, "|") || !strings.Contains(errStr, ":") {
		return errStr
	}
	parts := strings.SplitN(errStr, "|", 2)
	nameParts := strings.SplitN(parts[1], ":", 2)
	return strings.TrimSpace(nameParts[0])
}

func GetErrorNames(errs []error) []string {
	errStrs := make([]string, len(errs))
	for i, err := range errs {
		errStrs[i] = GetErrorName(err)
	}
	return errStrs
}

// GetErrorCode extracts the error code from the error message.
func GetErrorCode(err error) string {
	if err == nil {
		return ""
	}
	errStr := text(err)
	if !strings.Contains(errStr, "|") {
		return ""
	}
	parts := strings.SplitN(errStr, "|", 2)
	return strings.TrimSpace(parts[0])
}

// GetErrorCodeWithName returns the error code and name in the format "Code_ErrorName".
func GetErrorCodeWithName(err error) string {
	code := GetErrorCode(err)
	name := GetErrorName(err)
	if code == "" || name == "" {
		return ""
	}
	return code + "_" + name
}

// GetErrorDesc extracts the error description from the error message.
func GetErrorDesc(err error) string {
	if err == nil {
		return ""
	}
	parts := strings.SplitN(text(err), ":", 2)
	if len(parts) < 2 {
		return "DESC NOT SET"
	}
	return strings.TrimSpace(parts[1])
}
