// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scemi provides the host side of the co-emulation link.
//
// A host connects to the emulation fabric with [Init], binds named ports to
// the connection and starts a [ServiceThread] that routes inbound messages to
// the bound ports. Messages towards the device are sent through an
// [InportProxy], messages from the device are received from an
// [OutportQueue]. The [ShutdownXactor] tells the device that the host is done.
//
// All messages are exchanged as frames with a fixed 8 byte header followed by
// the message body. See [Header] for the layout.
package scemi
