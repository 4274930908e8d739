package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fpang/social-video-pipeline/internal/posts"
)

// postID parses the {id} path segment.
func postID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

// GET /api/posts
func (s *server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"posts": s.posts.List(),
	})
}

// GET /api/posts/{id}
func (s *server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := s.posts.Get(id)
	if err != nil {
		httpError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

// POST /api/posts
func (s *server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req posts.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post := s.posts.Create(req)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"post":    post,
		"message": "Post created successfully",
	})
}

// PUT /api/posts/{id}
func (s *server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req posts.UpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := s.posts.Update(id, req)
	if err != nil {
		httpError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"post":    post,
		"message": "Post updated successfully",
	})
}

// DELETE /api/posts/{id}
func (s *server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := s.posts.Delete(id); err != nil {
		httpError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Post deleted successfully",
	})
}

// POST /api/posts/{id}/publish
func (s *server) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	id, err := postID(r)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := s.posts.Publish(r.Context(), id)
	if err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			httpError(w, http.StatusNotFound, "Post not found")
			return
		}
		httpError(w, http.StatusInternalServerError, "Failed to publish post")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": post.Status == posts.StatusPublished,
		"post":    post,
		"results": post.PublishResults,
	})
}
