// Package tableio reads and writes tables as CSV.
//
// Reading infers a type per column from its values: empty fields become
// missing cells, integers and floats are parsed as numbers, and everything
// else stays text. A leading UTF-8 byte order mark is dropped.
package tableio
