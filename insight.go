// Package insight provides a deterministic question-answering engine for
// tabular data.
//
// Usage:
//
//	import (
//	    "github.com/spektr-org/insight/engine"
//	    "github.com/spektr-org/insight/planner"
//	    "github.com/spektr-org/insight/resolve"
//	)
//
//	classifier := planner.New(resolve.NewResolver(resolve.DefaultVocabulary()), logger)
//	pipeline := engine.NewPipeline(classifier, engine.NewExecutor(logger), logger)
//	resp := pipeline.Run("total revenue by region", table, nil)
//
// A question is resolved against the dataset schema, classified by
// ordered keyword rules into a structured analysis plan, executed
// locally, and validated. The engine never calls any external service —
// all computation is local and repeatable.
package insight
