/*
Package lifecycle implements the connecting/connected pair shared by every
layer that must establish a resource before its nested behaviors can run and
must recover when the resource is lost.

A Connecting behavior resets its Link on entry and tries to establish it once
per step, sleeping for the retry interval after each failure. Once the link is
up it builds the connected phase, handing itself over as the reconnect target.
A Connected behavior is a state.Composite that checks the link on every step;
when the link is gone it sleeps for the loss delay and replaces itself (and
with it every nested behavior) by its reconnect continuation.

The network-attach pair (package attach) and the transport connection pair
(package connection) are both built on these two types.
*/
package lifecycle
