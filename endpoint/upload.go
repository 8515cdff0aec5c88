package endpoint

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ariebrainware/aba-tracker/middleware"
	"github.com/ariebrainware/aba-tracker/storage"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
)

// sniffLen is the number of bytes http.DetectContentType looks at.
const sniffLen = 512

// UploadImage stores the multipart file field "image" and returns its URL.
// The content type is sniffed from the bytes, not taken from the client.
func UploadImage(c *gin.Context) {
	images := middleware.GetImageStore(c)
	if images == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Image storage not configured", Err: errors.New("image store is nil")})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxImageSize+1<<20)
	header, err := c.FormFile("image")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Missing image file", Err: err})
		return
	}
	if header.Size > storage.MaxImageSize {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Image too large",
			Err: fmt.Errorf("image exceeds %d bytes", storage.MaxImageSize),
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to read image", Err: err})
		return
	}
	defer file.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		util.CallUserError(c, util.APIErrorParams{Msg: "Failed to read image", Err: err})
		return
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if _, err := storage.ExtensionFor(contentType); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "File is not a supported image", Err: err})
		return
	}

	url, err := images.Save(c.Request.Context(), contentType, io.MultiReader(bytes.NewReader(head), file), header.Size)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to store image", Err: err})
		return
	}
	util.CallCreated(c, util.APISuccessParams{
		Msg:  "Image uploaded",
		Data: map[string]interface{}{"image_url": url},
	})
}
