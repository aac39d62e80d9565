package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandRegister binds the connection to a user id.
	CommandRegister CommandKind = iota
	// CommandPrivateMessage sends a directed message to another user.
	CommandPrivateMessage
)

// Command represents an action requested by a client.
// Ids are kept in the textual form the client sent; the router coerces them.
type Command struct {
	Kind       CommandKind
	UserID     string
	UserName   string
	FromUserID string
	ToUserID   string
	Content    *string
}
