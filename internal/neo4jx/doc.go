// Package neo4jx routes compiled queries to a neo4j server.
//
// The compiler never talks to a database. This package is the thin
// adapter on the other side: it maps a query's access mode onto the
// driver's session access mode and runs the statement inside a managed
// read or write transaction, so read queries can be served by cluster
// followers and writes go to the leader.
package neo4jx
