/*
Package voicelink is the behavior engine of a network-attached voice device.

The device is modeled as a tree of behaviors. Every behavior lives in a slot;
a behavior returns a transition from Step and Handle and the owning slot
swaps it for its successor, calling Leave on the old behavior before Enter on
the new one. Composite behaviors own a fixed list of slots and fan every call
out to them in order, so the whole tree is driven from a single root.

# Layers

The usual tree is:

	attached to network
	  connected to control websocket
	    protocols negotiated
	      waiting for audio capture websocket address
	      ready to play audio

Each connection layer is a connecting/connected pair: the connecting phase
retries on a fixed interval; the connected phase checks liveness every step
and, when the link is gone, discards everything nested in it and hands control
back to its connecting phase.

# Usage

	eng := voicelink.New(root, voicelink.WithLogger(logger))
	if err := eng.Run(ctx); err != nil {
		log.Fatal(err)
	}

Run steps the tree once per tick on the calling goroutine; inbound messages
are delivered during those steps, so behaviors never need locks.
*/
package voicelink
