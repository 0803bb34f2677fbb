package service

import "errors"

var (
	ErrValidation        = errors.New("invalid answers")
	ErrModelInvocation   = errors.New("model invocation failed")
	ErrModelReported     = errors.New("model reported failure")
	ErrContractViolation = errors.New("model response violates result contract")
)
