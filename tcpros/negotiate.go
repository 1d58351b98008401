package tcpros

// Wildcard lets introspection tools subscribe without knowing the schema
// (§4.5); a subscriber offering it always negotiates successfully, but a
// publisher MUST still send its own real md5sum.
const Wildcard = "*"

// CheckMD5 applies the §4.5 negotiation rule: the initiator's md5sum must
// equal the responder's, or the initiator must have offered the wildcard.
func CheckMD5(initiatorMD5, responderMD5 string) error {
	if initiatorMD5 == Wildcard || initiatorMD5 == responderMD5 {
		return nil
	}
	return &HeaderMismatchError{Reason: "md5sum mismatch: " + initiatorMD5 + " != " + responderMD5}
}

// SubscriberHeader builds the subscriber→publisher connection header.
func SubscriberHeader(callerID, topic, msgType, md5sum string, tcpNoDelay bool) map[string]string {
	h := map[string]string{
		"callerid": callerID,
		"topic":    topic,
		"type":     msgType,
		"md5sum":   md5sum,
	}
	if tcpNoDelay {
		h["tcp_nodelay"] = "1"
	}
	return h
}

// PublisherReplyHeader builds the publisher's reply to a subscriber.
func PublisherReplyHeader(callerID, topic, msgType, md5sum, messageDefinition string, latched bool) map[string]string {
	latchVal := "0"
	if latched {
		latchVal = "1"
	}
	return map[string]string{
		"callerid":           callerID,
		"topic":              topic,
		"type":               msgType,
		"md5sum":             md5sum,
		"message_definition": messageDefinition,
		"latching":           latchVal,
	}
}

// ServiceClientHeader builds the service client→server connection header.
func ServiceClientHeader(callerID, service, md5sum string, persistent bool) map[string]string {
	h := map[string]string{
		"callerid": callerID,
		"service":  service,
		"md5sum":   md5sum,
	}
	if persistent {
		h["persistent"] = "1"
	}
	return h
}

// ServiceServerReplyHeader builds the service server's reply to a client.
func ServiceServerReplyHeader(callerID, msgType, md5sum, requestType, responseType string) map[string]string {
	return map[string]string{
		"callerid":      callerID,
		"type":          msgType,
		"md5sum":        md5sum,
		"request_type":  requestType,
		"response_type": responseType,
	}
}

// ErrorHeader builds the single-field error header a responder writes and
// then closes with, on negotiation failure.
func ErrorHeader(reason string) map[string]string {
	return map[string]string{"error": reason}
}

// IsPersistent reads the "persistent" field convention (§4.5).
func IsPersistent(h map[string]string) bool {
	return h["persistent"] == "1"
}

// IsLatched reads the "latching" field convention (§4.5).
func IsLatched(h map[string]string) bool {
	return h["latching"] == "1"
}

// TCPNoDelay reads the optional "tcp_nodelay" field convention (§4.5).
func TCPNoDelay(h map[string]string) bool {
	return h["tcp_nodelay"] == "1"
}

// FormatBool is a small helper used when building headers from a Go bool.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
