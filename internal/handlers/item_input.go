package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/closetline/internal/models"
)

// --- Inputs ---

// itemInput is a create/update request after decoding, whatever the content type.
type itemInput struct {
	Patch models.ItemPatch

	CoverBase64      string
	AdditionalBase64 []string

	CoverFiles      []*multipart.FileHeader
	AdditionalFiles []*multipart.FileHeader
}

// flexString accepts a JSON string, number or boolean as text.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	*s = flexString(strings.Trim(string(b), `"`))
	return nil
}

// itemJSON mirrors the JSON body. Raw fields accept the loose shapes browser
// clients send (numbers as strings, tags as a string).
type itemJSON struct {
	Name                   *string         `json:"name"`
	Type                   *string         `json:"type"`
	Description            *string         `json:"description"`
	CoverImage             *string         `json:"coverImage"`
	AdditionalImages       []string        `json:"additionalImages"`
	IsActive               *flexString     `json:"isActive"`
	Tags                   json.RawMessage `json:"tags"`
	Price                  *flexString     `json:"price"`
	Size                   *string         `json:"size"`
	Color                  *string         `json:"color"`
	Brand                  *string         `json:"brand"`
	Condition              *string         `json:"condition"`
	CoverImageBase64       string          `json:"coverImageBase64"`
	AdditionalImagesBase64 []string        `json:"additionalImagesBase64"`
}

// bindItemInput decodes a JSON, multipart or urlencoded item body.
func bindItemInput(c *gin.Context) (*itemInput, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return bindItemJSON(c)
	}
	return bindItemForm(c)
}

func bindItemJSON(c *gin.Context) (*itemInput, error) {
	var body itemJSON
	dec := json.NewDecoder(c.Request.Body)
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}

	fields := map[string]string{}
	in := &itemInput{
		CoverBase64:      body.CoverImageBase64,
		AdditionalBase64: body.AdditionalImagesBase64,
	}
	p := &in.Patch
	p.Name, p.Type, p.Description, p.CoverImage = body.Name, body.Type, body.Description, body.CoverImage
	p.Size, p.Color, p.Brand, p.Condition = body.Size, body.Color, body.Brand, body.Condition
	if body.AdditionalImages != nil {
		p.AdditionalImages, p.ReplaceImages = body.AdditionalImages, true
	}
	if body.IsActive != nil {
		p.IsActive = parseBool(string(*body.IsActive), fields)
	}
	if body.Price != nil {
		p.Price = parsePrice(string(*body.Price), fields)
	}
	if len(body.Tags) > 0 && !bytes.Equal(body.Tags, []byte("null")) {
		tags, err := parseTagsJSON(body.Tags)
		if err != nil {
			fields["tags"] = "must be a list of strings"
		}
		p.Tags, p.ReplaceTags = tags, err == nil
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}
	return in, nil
}

func parseTagsJSON(raw json.RawMessage) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return splitTags([]string{s}), nil
}

// splitTags accepts repeated values, a single JSON array, or one comma-separated value.
func splitTags(values []string) []string {
	if len(values) != 1 {
		return values
	}
	v := strings.TrimSpace(values[0])
	if strings.HasPrefix(v, "[") {
		var list []string
		if err := json.Unmarshal([]byte(v), &list); err == nil {
			return list
		}
	}
	return strings.Split(v, ",")
}

func bindItemForm(c *gin.Context) (*itemInput, error) {
	in := &itemInput{}
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, fmt.Errorf("invalid multipart body: %w", err)
		}
		in.CoverFiles = form.File["coverImage"]
		in.AdditionalFiles = form.File["additionalImages"]
	} else if err := c.Request.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form body: %w", err)
	}

	fields := map[string]string{}
	p := &in.Patch
	p.Name = formValue(c, "name")
	p.Type = formValue(c, "type")
	p.Description = formValue(c, "description")
	p.CoverImage = formValue(c, "coverImage")
	p.Size = formValue(c, "size")
	p.Color = formValue(c, "color")
	p.Brand = formValue(c, "brand")
	p.Condition = formValue(c, "condition")
	if v, ok := c.GetPostFormArray("additionalImages"); ok {
		p.AdditionalImages, p.ReplaceImages = v, true
	}
	if v := formValue(c, "isActive"); v != nil {
		p.IsActive = parseBool(*v, fields)
	}
	if v := formValue(c, "price"); v != nil {
		p.Price = parsePrice(*v, fields)
	}
	if v, ok := c.GetPostFormArray("tags"); ok {
		p.Tags, p.ReplaceTags = splitTags(v), true
	}
	if v := formValue(c, "coverImageBase64"); v != nil {
		in.CoverBase64 = *v
	}
	if v, ok := c.GetPostFormArray("additionalImagesBase64"); ok {
		in.AdditionalBase64 = v
	}
	if len(fields) > 0 {
		return nil, &models.ValidationError{Fields: fields}
	}
	return in, nil
}

func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	return &v
}

func parseBool(v string, fields map[string]string) *bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		fields["isActive"] = "must be true or false"
		return nil
	}
	return &b
}

// parsePrice treats an empty value as "not provided".
func parsePrice(v string, fields map[string]string) *float64 {
	v = strings.TrimSpace(v)
	if v == "" || v == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		fields["price"] = "must be a number"
		return nil
	}
	return &f
}

var errCoverCount = errors.New("coverImage accepts a single file")
