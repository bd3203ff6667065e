package employee

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

var allowedPhotoTypes = []string{"image/jpeg", "image/png"}

// ErrPhotoType は jpg/png 以外の写真がアップロードされた場合のエラーです。
var ErrPhotoType = errors.New(MsgImageType)

// ErrPhotoTooLarge は写真が上限サイズを超えた場合のエラーです。
var ErrPhotoTooLarge = errors.New(MsgImageTooLarge)

// ReadPhoto はアップロードされたファイルを読み込み、内容から種別を判定します。
// 拡張子やクライアント申告の Content-Type は信用しません。
func ReadPhoto(fh *multipart.FileHeader, maxSize int64) (*Photo, error) {
	if fh == nil {
		return nil, nil
	}
	if maxSize > 0 && fh.Size > maxSize {
		return nil, ErrPhotoTooLarge
	}

	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded photo: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file
	if maxSize > 0 {
		reader = io.LimitReader(file, maxSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded photo: %w", err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, ErrPhotoTooLarge
	}
	if len(data) == 0 {
		return nil, ErrPhotoType
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedPhotoTypes...) {
		return nil, ErrPhotoType
	}

	return &Photo{
		Filename:    fh.Filename,
		ContentType: mtype.String(),
		Data:        bytes.Clone(data),
	}, nil
}
