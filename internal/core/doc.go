// Package core implements the bulk import pipeline for member-management
// data: parsing uploaded files, checking them against per-entity rules, and
// saving valid rows inside a single unit of work.
//
// # Entity Registry
//
// Each importable entity registers a [Definition] at init time:
//
//	core.Register(core.Definition{
//	    Info:     core.EntityInfo{Key: "team", Label: "Team", Headers: []string{"name", "description"}},
//	    Validate: validateTeam,
//	    Keys:     teamKeys,
//	    Process:  saveTeam,
//	    Sample:   teamSample,
//	    Export:   exportTeams,
//	})
//
// The definitions live in package entities, which must be imported for its
// side effects by any binary that runs imports.
//
// # Preview and Import
//
// [Service.Preview] and [Service.Import] share the row parser, the header
// check and each entity's Validate function, so a preview reports exactly
// the messages an import would. Preview reads through a [Snapshot] and never
// writes. Import opens a [UnitOfWork], saves each valid row inside a
// savepoint, and commits only when every row succeeded; one failed row rolls
// back the whole file.
//
// Natural keys of rows that are accepted earlier in the same file are
// tracked, so a file that repeats a team name reports the repeat as a
// duplicate in both preview and import.
//
// # Error Handling
//
// Problems with a file as a whole are [*FileFormatError]. Problems with a row
// are [Issues] recorded in the result and never stop the scan. [MapError]
// turns technical errors into operator-facing messages with a support code.
package core
