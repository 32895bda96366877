//go:generate gomarkdoc -e -f github -o README.md . --repository.url https://github.com/agentstation/eventmap --repository.default-branch master --repository.path /

// Package eventmap provides the state store behind the event map: the event
// catalog, the filter criteria and selection derived from it, and the
// two-way synchronization of that state with a shareable URL.
package eventmap
