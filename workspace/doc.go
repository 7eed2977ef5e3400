// Package workspace manages per-execution staging directories.
//
// Every accepted execution request owns exactly one workspace: a uniquely
// named directory holding the submitted source as a single file. Workspaces
// are created at request start and destroyed at request end on every exit
// path; destruction is best-effort and never surfaces an error to the
// caller, so cleanup failures cannot mask an execution result.
package workspace
