package config

import "errors"

var (
	errInvalidVigilance = errors.New("config: vigilance_rho must be in [0,1]")
	errInvalidVectorDim = errors.New("config: vector_dim must be non-negative")
)
