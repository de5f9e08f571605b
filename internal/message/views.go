package message

// Typed views over a Result. The model is asked to follow these shapes but
// nothing enforces it, so every field is optional and decoding a view can
// fail without affecting the response that is sent back.

// Location is one place an item was found.
type Location struct {
	Container string `json:"container,omitempty"`
	Position  string `json:"position,omitempty"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// FindItemResult is the find_item response shape.
type FindItemResult struct {
	Action     string     `json:"action,omitempty"`
	Item       string     `json:"item,omitempty"`
	Locations  []Location `json:"locations,omitempty"`
	SpokenText string     `json:"spoken_text,omitempty"`
}

// AddItemResult is the add_item response shape.
type AddItemResult struct {
	Action     string `json:"action,omitempty"`
	Item       string `json:"item,omitempty"`
	Container  string `json:"container,omitempty"`
	Position   string `json:"position,omitempty"`
	Quantity   *int   `json:"quantity,omitempty"`
	SpokenText string `json:"spoken_text,omitempty"`
}

// ContentEntry is one item in a container listing.
type ContentEntry struct {
	Position string `json:"position,omitempty"`
	Item     string `json:"item,omitempty"`
	Quantity *int   `json:"quantity,omitempty"`
}

// ListContainerResult is the list_container response shape.
type ListContainerResult struct {
	Action     string         `json:"action,omitempty"`
	Container  string         `json:"container,omitempty"`
	Contents   []ContentEntry `json:"contents,omitempty"`
	SpokenText string         `json:"spoken_text,omitempty"`
}

// Dimensions of an item looking for a home, in whatever unit the model chose.
type Dimensions struct {
	Width  *float64 `json:"width,omitempty"`
	Depth  *float64 `json:"depth,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// SpaceLocation is a container with free positions.
type SpaceLocation struct {
	Container string   `json:"container,omitempty"`
	Positions []string `json:"positions,omitempty"`
}

// FindSpaceResult is the find_space response shape.
type FindSpaceResult struct {
	Action             string          `json:"action,omitempty"`
	Dimensions         *Dimensions     `json:"dimensions,omitempty"`
	AvailableLocations []SpaceLocation `json:"available_locations,omitempty"`
	SpokenText         string          `json:"spoken_text,omitempty"`
}

// FindItem decodes r as a find_item response.
func (r *Result) FindItem() (*FindItemResult, error) {
	var v FindItemResult
	if err := r.as(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// AddItem decodes r as an add_item response.
func (r *Result) AddItem() (*AddItemResult, error) {
	var v AddItemResult
	if err := r.as(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListContainer decodes r as a list_container response.
func (r *Result) ListContainer() (*ListContainerResult, error) {
	var v ListContainerResult
	if err := r.as(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// FindSpace decodes r as a find_space response.
func (r *Result) FindSpace() (*FindSpaceResult, error) {
	var v FindSpaceResult
	if err := r.as(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
