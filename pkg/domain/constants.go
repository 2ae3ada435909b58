package domain

// KeyType is the wire field holding the command name.
// The rest of the object is forwarded to behaviors verbatim.
const KeyType = "type"
