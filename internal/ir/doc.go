// Package ir provides the wire and value types shared by every layer of the
// animation graph engine.
//
// This package contains type definitions and value helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// wire contract with the host (node ids, view tags, inbound events, outbound
// payloads, structural operations) in one foundational layer.
//
// Key design constraints:
//   - Numbers are float64 at evaluation time; integers only appear as ids
//   - Logical results are encoded as 1/0, never as Go bools, so they compose
//     with arithmetic operators
//   - Structural operations are plain records so they can be buffered,
//     serialized and replayed in order
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for recorded traces and golden files
package ir
