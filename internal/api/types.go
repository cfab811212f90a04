package api

// RateRecipeRequest is the body of POST /recipes/:id/ratings.
type RateRecipeRequest struct {
	Rating int `json:"rating"`
}

// CommentRecipeRequest is the body of POST /recipes/:id/comments.
type CommentRecipeRequest struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}
