// Package services implements the driving ports on top of the driven ones.
//
// A question flows through QueryService: it loads the session history, builds
// a fresh ToolRegistry with the content search and outline tools, and hands
// both to the Orchestrator, which makes at most two model calls. Ingestion,
// catalog analytics, sessions and settings live alongside it.
package services
