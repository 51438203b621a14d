// Package normalize converts raw post fragments into stable record fields.
//
// It owns the two lossy steps of ingestion: reducing a marked-up post body
// to clean paragraph text with the author's signature block excluded, and
// resolving the forum's display timestamps (absolute, or relative forms
// like "Yesterday 18:30:14") into absolute UTC times.
//
// All relative dates resolve against UTC so repeated ingestion runs agree
// on what "yesterday" meant.
package normalize
