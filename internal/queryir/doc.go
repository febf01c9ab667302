// Package queryir describes read queries over recorded traces.
//
// A Query names one trace table, the columns to return and a filter. The
// store builds queries from user filters (trace --kind, --view, --frames)
// and a backend compiler turns them into SQL:
//
//	[trace flags] → [Query IR] → [querysql] → SQLite
//
// Query and Predicate are sealed: only this package implements them, so
// backends can switch over every case.
//
// Tables and their columns are fixed. Validate rejects unknown tables,
// unknown columns, values of the wrong type and empty ranges before a
// query reaches a backend.
//
// Results are always ordered by the table's logical sequence column. A
// query has no way to ask for another order.
package queryir
