package model

import "time"

// DocumentType identifies what kind of container a RawDocument was decoded from.
type DocumentType string

// Document types.
const (
	DocumentPDF   DocumentType = "pdf"
	DocumentEmail DocumentType = "email"
	DocumentOFX   DocumentType = "ofx"
	DocumentText  DocumentType = "text"
)

// RawDocument is decoded statement text plus source metadata. It is immutable
// input to the extraction pipeline.
type RawDocument struct {
	Date    time.Time // email Date header, zero when unknown
	Body    string
	Subject string
	Sender  string
	Name    string // file name or other caller-supplied label
	Type    DocumentType
}

// FieldKind is the kind of value a FieldCandidate carries.
type FieldKind string

// Field kinds.
const (
	FieldDate         FieldKind = "date"
	FieldAmount       FieldKind = "amount"
	FieldMerchant     FieldKind = "merchant"
	FieldCardLastFour FieldKind = "card_last_four"
)

// FieldCandidate is one value pulled out of a line of text. Parsed is false
// when the raw match could not be converted to its typed value.
type FieldCandidate struct {
	Date   time.Time
	Kind   FieldKind
	Raw    string
	Amount float64
	Line   int
	Parsed bool
}

// EmailType classifies a card-issuer email.
type EmailType string

// Email types, in classification order.
const (
	EmailStatement   EmailType = "statement"
	EmailTransaction EmailType = "transaction"
	EmailPayment     EmailType = "payment"
	EmailBalance     EmailType = "balance"
	EmailUnknown     EmailType = "unknown"
)
