package api

// LikeResponse is served by the frontend's own JSON like endpoint.
type LikeResponse struct {
	ThreadId int64 `json:"threadId"`
	Count    int   `json:"count"`
	Liked    bool  `json:"liked"`
}
