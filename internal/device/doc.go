// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package device provides a simulated device for the co-emulation link.
//
// It answers the handshake, records what the host sends and plays back
// scripted status messages whenever the host starts a run. It is used for
// testing the host side and for running the driver without the emulation
// fabric.
package device
