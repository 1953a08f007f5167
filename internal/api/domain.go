package api

import (
	"github.com/JaimeStill/inspector/internal/catalog"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/internal/parts"
	"github.com/JaimeStill/inspector/internal/results"
	"github.com/JaimeStill/inspector/internal/sessions"
	"github.com/JaimeStill/inspector/internal/summaries"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Inspections inspections.System
	Catalog     catalog.System
	Results     results.System
	Sessions    sessions.System
	Summaries   summaries.System
	Parts       parts.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	inspectionsSystem := inspections.New(db, runtime.Logger, runtime.Pagination)
	catalogSystem := catalog.New(db, runtime.Logger, runtime.Pagination)

	resultsSystem := results.New(
		db,
		runtime.Storage,
		inspectionsSystem,
		runtime.Metrics,
		runtime.Logger,
	)

	sessionsSystem := sessions.New(
		&runtime.Sessions,
		inspectionsSystem,
		catalogSystem,
		resultsSystem,
		runtime.Logger,
	)

	summariesSystem := summaries.New(summaries.Deps{
		DB:          db,
		Timeout:     runtime.QueryTimeout,
		Inspections: inspectionsSystem,
		Results:     resultsSystem,
		Mail:        runtime.Mail,
		Metrics:     runtime.Metrics,
		Logger:      runtime.Logger,
		Pagination:  runtime.Pagination,
	})

	partsSystem := parts.New(db, runtime.QueryTimeout, runtime.Logger)

	return &Domain{
		Inspections: inspectionsSystem,
		Catalog:     catalogSystem,
		Results:     resultsSystem,
		Sessions:    sessionsSystem,
		Summaries:   summariesSystem,
		Parts:       partsSystem,
	}
}
