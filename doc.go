// Package portfolio values a personal investment portfolio held in Turkish
// lira.
//
// Everything derives from three inputs: the transaction log, a table of
// exchange rates to TRY and the prices entered by hand. [Compute] folds them
// into a [Snapshot] holding one [Position] per symbol (held amount, average
// cost, realized and unrealized profit) and the portfolio totals. The
// valuation is pure: the same inputs always give the same snapshot, and
// nothing is fetched while computing it.
//
// New transactions go through [Admit], which parses user input and refuses
// a sale of more units than are held. A [Book] ties the valuation to a
// [Store] and keeps serving the last known snapshot when the store fails.
//
// This package serves as the foundational logic for the pcs command-line
// tool and its HTTP server.
package portfolio
