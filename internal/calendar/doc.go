// Package calendar reads events from macOS Calendar and drives Fantastical.
//
// Queries run as AppleScript programs against the Calendar application and
// print one pipe-delimited line per event, which ParseEvents turns into
// sorted Event values. Event creation, navigation and search open
// Fantastical URLs (x-fantastical3://) instead.
//
// Example usage:
//
//	exec := osascript.New()
//	client := calendar.NewClient(exec, calendar.DefaultSettings())
//
//	week, err := client.Events(ctx, 7)
//	if err != nil {
//	    if osascript.IsPermissionDenied(err) {
//	        // grant Automation access in System Settings
//	    }
//	    return err
//	}
package calendar
