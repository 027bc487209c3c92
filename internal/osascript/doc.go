// Package osascript runs AppleScript through osascript and opens application
// URLs through open.
//
// An Executor hands a script to the host in one of three modes: a single
// statement, a multi-line program, or a URL. Failures come back as *Error
// with an ErrorKind computed from the raw output, so callers can tell a
// missing Automation permission apart from any other failure without
// inspecting message text.
package osascript
