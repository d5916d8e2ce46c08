// Package services holds the error taxonomy and context plumbing shared by
// pipeline stages and external service clients.
package services
