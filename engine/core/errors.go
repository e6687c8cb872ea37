package core

import (
	"errors"
)

var (
	ErrBufferAllocation    = errors.New("device refused buffer allocation")
	ErrInvalidResource     = errors.New("invalid resource handle")
	ErrResourceMapped      = errors.New("resource is already mapped")
	ErrResourceNotMapped   = errors.New("resource is not mapped")
	ErrNoVertexShader      = errors.New("no vertex shader bound")
	ErrInputLayout         = errors.New("input layout does not match shader signature")
	ErrUnsupportedTopology = errors.New("unsupported primitive topology")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrUnknown             = errors.New("unknown")
)
