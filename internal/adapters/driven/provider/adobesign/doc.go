// Package adobesign implements the agreement source and reminder
// dispatcher ports against the Adobe Acrobat Sign REST v6 API.
//
// The adapter normalises the provider's several response shapes into a
// single AgreementSnapshot. Member payloads in particular have changed
// across API revisions, so extraction walks an ordered chain of known
// shapes and takes the first that yields participants.
package adobesign
