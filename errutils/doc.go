package errutils

// Package errutils provides a set of utilities for working with errors in Go.

// Example:
//
// The following example demonstrates how to use `FmtError` and `MultiError` to collect errors:
//
//     package main
//
//     import (
//         "fmt"
//         "github.com/spotifreak/spotifreak/errutils"
//     )
//
//     func main() {
//         multiErr := errutils.NewMultiErr(someFunction())
//         multiErr.Add(errutils.FmtError("failed to perform operation %s", "sync"))
//         if multiErr.HasErrors() {
//             fmt.Println(multiErr)
//         }
//     }
//
// In the above example, the error returned by `someFunction()` (if not nil) and a formatted error are collected
// in one `MultiError`, whose Error method joins the messages with newlines.
