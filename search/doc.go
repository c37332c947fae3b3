// Package search answers hybrid queries over the document corpus.
//
// A query is embedded once, then lexical and vector retrieval run
// concurrently against the store. Raw scores from the two methods live on
// incomparable scales, so each method's scores are min-max normalized per
// query before a configurable fusion policy (weighted sum, reciprocal rank
// fusion, or weighted reciprocal) merges the rankings. Near-duplicate
// results are collapsed by title-token Jaccard similarity before the final
// limit is applied.
//
// When one retrieval method's index is not provisioned the query degrades
// to the other method and the response is flagged, rather than failing.
package search
