package api

import (
	"github.com/JaimeStill/beacon/internal/classifications"
	"github.com/JaimeStill/beacon/internal/summaries"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Classifications classifications.System
	Summaries       summaries.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Classifications: classifications.New(
			classifications.NewStore(runtime.Database.Connection()),
			runtime.Responder,
			runtime.Storage,
			runtime.Logger,
			runtime.Classify,
		),
		Summaries: summaries.New(
			runtime.Responder,
			runtime.Logger,
			runtime.Classify.MaxPosts,
		),
	}
}
