// Package models defines the core domain models for fleetpay.
//
// # Models
//
//   - Fleet: a group activity whose loot is being distributed
//   - FleetParticipant: one character's participation record in one fleet
//   - Pool: a valued collection of loot awaiting distribution
//   - LootItem: one priced line entry in a pool
//   - Payout: one human's computed entitlement from one pool
//
// # Design Principles
//
//  1. Amounts are shopspring decimals, quantized to 2 digits on write
//  2. Characters are identified by their EVE entity ID (int64); the
//     payable identity is always a main character ID
//  3. Avoid circular references: models hold ID strings, not pointers
//  4. Timestamps are Unix seconds, 0 meaning "not set"
package models
