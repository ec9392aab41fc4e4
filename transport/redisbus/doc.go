// Package redisbus shares session snapshots between server instances.
//
// Every accepted move, answer, reset and clock tick is published as a JSON
// Envelope on the channel "honeybear:state:<session>". Each instance runs
// Bus.Run with its websocket hub as the Sink, so a viewer connected to any
// instance sees every change. The latest envelope of a session is also kept
// under "honeybear:last:<session>" for DefaultSnapshotTTL.
package redisbus
