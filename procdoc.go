// Package procdoc retrieves case documents from a public court portal.
// It drives a headless browser through the portal's search flow, locates
// the case record, resolves links to filed documents, downloads them or
// extracts their text, and scrapes the case movement history into a clean
// text form suitable for downstream processing.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., rod/, goquery/, sqlite/).
package procdoc
