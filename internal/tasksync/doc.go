// Package tasksync is the client side of the field support portal: it signs
// in, keeps the engineer's task list in step with the server and applies
// status and notes updates under the workflow rules.
//
// A Client holds one session and one task list. Every successful fetch
// replaces the list wholesale; updates are never applied locally, the list
// is re-fetched instead. Network operations on a Client run one at a time.
package tasksync
