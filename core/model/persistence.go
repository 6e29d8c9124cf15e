package model

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"time"
)

// FormatVersion は保存形式のバージョン（互換性チェック用）
const FormatVersion = "1"

// PersistedModel は保存されるモデルを包むエンベロープ
// モデル本体に加えて種類・バージョン・保存時刻を記録する
type PersistedModel struct {
	// ModelType はモデルの種類（Classifier, Dataset等）
	ModelType string

	// Version は保存形式のバージョン
	Version string

	// CreatedAt は保存時刻（UTC）
	CreatedAt time.Time

	// Model はモデル本体
	// 具象型は保存側・読み込み側の双方で gob.Register 済みであること
	Model interface{}
}

// SaveModel はモデルをエンベロープ付きでファイルに保存する
//
// パラメータ:
//   - model: 保存するモデル
//   - modelType: モデルの種類（読み込み時の検証に使用）
//   - filename: 保存先のファイルパス
//
// 戻り値:
//   - error: 保存に失敗した場合のエラー
//
// 使用例:
//
//	var clf boost.Classifier
//	// ... モデルの学習 ...
//	err := model.SaveModel(clf.Model(), "Classifier", "model_tuned.gob")
func SaveModel(model interface{}, modelType, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	return SaveModelToWriter(model, modelType, file)
}

// LoadModel はファイルからモデルを読み込み、エンベロープを検証して本体を返す
//
// パラメータ:
//   - modelType: 期待するモデルの種類
//   - filename: 読み込み元のファイルパス
//
// 戻り値:
//   - interface{}: モデル本体（呼び出し側で型アサーションする）
//   - error: 読み込みまたは検証に失敗した場合のエラー
func LoadModel(modelType, filename string) (interface{}, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return LoadModelFromReader(modelType, file)
}

// SaveModelToWriter はモデルをエンベロープ付きでio.Writerに保存する
func SaveModelToWriter(model interface{}, modelType string, w io.Writer) error {
	envelope := PersistedModel{
		ModelType: modelType,
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Model:     model,
	}

	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(&envelope); err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}

	return nil
}

// LoadModelFromReader はio.Readerからエンベロープを読み込み、種類を検証して本体を返す
func LoadModelFromReader(modelType string, r io.Reader) (interface{}, error) {
	var envelope PersistedModel

	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}

	if envelope.ModelType != modelType {
		return nil, fmt.Errorf("model type mismatch: expected %s, got %s", modelType, envelope.ModelType)
	}

	return envelope.Model, nil
}
