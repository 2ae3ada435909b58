/*
Package protocol describes the control-connection wire format.

Client and server exchange JSON objects over text frames. Every object carries
a string "type" naming the message; the remaining fields depend on the type
and are forwarded to behaviors verbatim.

On connect the client lists the protocol groups it needs in a
"negotiate/request" message. Each group lists alternatives; the server picks
the first protocol it supports from each group and answers with
"negotiate/agree" carrying the chosen list.
*/
package protocol

// Message types.
const (
	TypeNegotiateRequest = "negotiate/request"
	TypeNegotiateAgree   = "negotiate/agree"

	TypePlaybackRequest  = ProtocolAudioLink + "/playback-request"
	TypePlaybackProgress = ProtocolAudioLink + "/playback-progress"
	TypePlaybackDone     = ProtocolAudioLink + "/playback-done"

	TypeSTTReady = ProtocolSTTServerside + "/ready"

	TypeMute   = ProtocolMute + "/mute"
	TypeUnmute = ProtocolMute + "/unmute"
)

// Protocol names.
const (
	ProtocolAudioLink     = "out.audio.link"
	ProtocolTTSServerside = "out.tts.serverside"
	ProtocolSTTServerside = "in.stt.serverside"
	ProtocolMute          = "in.mute"
)

// DeviceProtocols are the groups requested by a device: audio output by
// link, server-side speech synthesis, server-side recognition of streamed
// microphone input and mute control.
var DeviceProtocols = [][]string{
	{ProtocolAudioLink},
	{ProtocolTTSServerside},
	{ProtocolSTTServerside},
	{ProtocolMute},
}
