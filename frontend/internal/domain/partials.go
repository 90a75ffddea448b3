package frontend_domain

// ReplyData is the typed data for the "reply" template partial.
type ReplyData struct {
	Reply  *Reply
	Common *CommonTemplateData
}
