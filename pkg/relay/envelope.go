package relay

// Message type tags. Every frame on the wire is one JSON object with a
// top-level "type" discriminant drawn from this set (client-to-server),
// or from the reply types below (server-to-client).
const (
	TypeInit                   = "init"
	TypeRequestOfflineMessages = "request_offline_messages"
	TypeRegisterFCMToken       = "register_fcm_token"
	TypeRegisterPublicKey      = "register_public_key"
	TypeRequestPublicKey       = "request_public_key"
	TypeMessage                = "message"
	TypeDeleteMessage          = "delete_message"
	TypeEditMessage            = "edit_message"
	TypeMessageReaction        = "message_reaction"
	TypeForwardMessage         = "forward_message"
	TypeReadReceipt            = "read_receipt"
	TypeDeliveryReceipt        = "delivery_receipt"
	TypeTypingIndicator        = "typing_indicator"
	TypePing                   = "ping"
)

// Server-to-client reply and envelope type tags.
const (
	TypeUIDAssigned         = "uid_assigned"
	TypeError               = "error"
	TypeServerAck           = "server_ack"
	TypePong                = "pong"
	TypeFCMTokenRegistered  = "fcm_token_registered"
	TypePublicKeyRegistered = "public_key_registered"
	TypePublicKeyResponse   = "public_key_response"
	TypeMessageDeleted      = "message_deleted"
	TypeMessageEdited       = "message_edited"
)

// Push event kinds handed to the PushNotifier.
const (
	KindNewMessage      = "new_message"
	KindMessageDeleted  = "message_deleted"
	KindMessageEdited   = "message_edited"
	KindMessageReaction = "message_reaction"
)

// Frame is one inbound client frame. All fields except Type are optional;
// which ones are required depends on the type tag and is enforced by the
// router's per-type handlers.
type Frame struct {
	Type string `json:"type"`

	// init
	MyUID string `json:"my_uid,omitempty"`

	// Common addressing. FromUID is accepted as a legacy alias for
	// TargetUID on request_offline_messages.
	TargetUID string `json:"target_uid,omitempty"`
	FromUID   string `json:"from_uid,omitempty"`

	// message / forward_message
	ID            string `json:"id,omitempty"`
	EncryptedText string `json:"encrypted_text,omitempty"`
	Signature     string `json:"signature,omitempty"`
	ReplyToID     string `json:"replyToId,omitempty"`
	MessageType   string `json:"messageType,omitempty"`
	MediaData     string `json:"mediaData,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	FileSize      int64  `json:"fileSize,omitempty"`
	MimeType      string `json:"mimeType,omitempty"`

	// delete_message / edit_message / message_reaction / receipts
	MessageID        string `json:"message_id,omitempty"`
	NewEncryptedText string `json:"new_encrypted_text,omitempty"`
	NewSignature     string `json:"new_signature,omitempty"`
	Emoji            string `json:"emoji,omitempty"`
	Action           string `json:"action,omitempty"`

	// forward_message
	OriginalMessageID string `json:"original_message_id,omitempty"`
	ForwardedFrom     string `json:"forwarded_from,omitempty"`

	// register_fcm_token
	FCMToken string `json:"fcm_token,omitempty"`

	// register_public_key
	X25519Key  string `json:"x25519_key,omitempty"`
	Ed25519Key string `json:"ed25519_key,omitempty"`

	// typing_indicator
	Typing bool `json:"typing,omitempty"`
}

// Envelope is one server-relayed event. It is immutable once built by the
// router: stamped with the sender's identifier and server time (epoch
// milliseconds), serialized once, and the same bytes are used for direct
// delivery and for the offline queue.
type Envelope struct {
	Type    string `json:"type"`
	FromUID string `json:"from_uid"`
	Time    int64  `json:"time,omitempty"`

	ID            string `json:"id,omitempty"`
	EncryptedText string `json:"encrypted_text,omitempty"`
	Signature     string `json:"signature,omitempty"`
	ReplyToID     string `json:"replyToId,omitempty"`
	MessageType   string `json:"messageType,omitempty"`
	MediaData     string `json:"mediaData,omitempty"`
	FileName      string `json:"fileName,omitempty"`
	FileSize      int64  `json:"fileSize,omitempty"`
	MimeType      string `json:"mimeType,omitempty"`

	MessageID        string `json:"message_id,omitempty"`
	NewEncryptedText string `json:"new_encrypted_text,omitempty"`
	NewSignature     string `json:"new_signature,omitempty"`
	Emoji            string `json:"emoji,omitempty"`
	Action           string `json:"action,omitempty"`

	OriginalMessageID string `json:"original_message_id,omitempty"`
	ForwardedFrom     string `json:"forwarded_from,omitempty"`

	Typing *bool `json:"typing,omitempty"`
}

// --- Server replies ---

// ErrorReply is the inline error reply; the session continues afterwards.
type ErrorReply struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// UIDAssigned confirms a successful init.
type UIDAssigned struct {
	Type  string `json:"type"`
	MyUID string `json:"my_uid"`
}

// ServerAck confirms receipt of a message or forward and reports whether
// it reached the recipient's live channel.
type ServerAck struct {
	Type            string `json:"type"`
	ID              string `json:"id"`
	DeliveredOnline bool   `json:"delivered_online"`
}

// StatusReply is the generic {"type": ..., "status": "success"} reply used
// by the registration operations.
type StatusReply struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// PublicKeyResponse carries a peer's registered public keys, or an explicit
// keys_not_found marker when none are stored.
type PublicKeyResponse struct {
	Type       string `json:"type"`
	TargetUID  string `json:"target_uid"`
	X25519Key  string `json:"x25519_key,omitempty"`
	Ed25519Key string `json:"ed25519_key,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Pong answers a client ping.
type Pong struct {
	Type string `json:"type"`
}
