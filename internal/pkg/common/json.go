package common

import (
	"bytes"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
)

// ParseJSONBytes 解析 JSON 位元組切片到結構體，未知欄位略過
func ParseJSONBytes(data []byte, v interface{}) error {
	return decodeJSON(bytes.NewReader(data), v)
}

func decodeJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}

	// 確保沒有多餘資料
	if dec.More() {
		return fmt.Errorf("unexpected extra JSON data")
	}
	return nil
}

// ToJSONBytes 將結構體序列化為 JSON
func ToJSONBytes(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}
