// Package models defines the core domain models for the quotation editor.
//
// # Models
//
//   - Quotation: the editable document (metadata, parties, line items, tax, notes)
//   - LineItem: one priced row of a quotation; Subtotal is derived
//   - ClientInfo / ProviderInfo: the two parties, with optional inline images
//   - TaxConfig: tax label, rate and calculation mode
//   - Profile: reusable default values used to seed new quotations
//
// # Patches
//
// Updates are partial merges. Every patch type uses pointer fields so that
// "not supplied" (nil) can be told apart from "set to the zero value".
// LineItemPatch has no Subtotal field: the subtotal of a line
// is always quantity × unit price and is recomputed by ApplyTo.
//
// # Legacy records
//
// Older persisted quotations may lack taxConfig.mode and
// showSignatureSection. Normalize backfills both and must run wherever a
// quotation is read from persistence or history. TaxMode.OrDefault applies
// the same rule at every computation site.
package models
