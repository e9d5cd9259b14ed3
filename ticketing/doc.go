// Package ticketing defines the event-ticketing entity model and its
// use-cases on top of the store engine: capacity reservation, ticket
// issuance, publishing and audit history.
//
// Entity rows share one table. An event row anchors a family of child
// rows (location, items, bundles, history) through their sort key, read
// back in one query via an inverted index and folded together by the
// store's assembly declarations.
package ticketing
