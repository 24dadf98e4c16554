// Package token classifies product image references.
//
// A reference either already points into the local asset namespace
// (AlreadyLocal), carries a vendor image identifier that can be joined against
// the local pool (Token), or carries nothing usable (NoToken). NoToken is a
// normal classification that routes a record to the placeholder image, not an
// error.
//
// Vendor identifiers are opaque, case-significant runs with a fixed prefix.
// Thumbnail size decorations such as "!300x300" are stripped before anything
// is compared.
package token
