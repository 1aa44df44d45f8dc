// Package main provides localization for the apngview CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Input":         "入力",
		"Output":        "出力先",
		"Decoding":      "デコード",
		"Contact sheet": "コンタクトシート",
		"Playback":      "再生",
		"Debug":         "デバッグ",
		"Logging":       "ログ",

		// Root command
		"Decode, inspect and play animated PNG files": "アニメーションPNGのデコード・解析・再生",

		// Commands
		"Show canvas, frame and timing information":        "キャンバス・フレーム・タイミング情報を表示",
		"Write every composited frame as an image file":    "合成済みの全フレームを画像ファイルとして書き出し",
		"Render all frames onto one contact sheet image":   "全フレームを1枚のコンタクトシート画像に描画",
		"Play the animation headless, logging each frame": "アニメーションをヘッドレスで再生し、各フレームをログ出力",

		// Global flags
		"YAML configuration file":                 "YAML設定ファイル",
		"Largest accepted canvas width or height": "受け付けるキャンバスの最大幅・高さ",
		"Log level (debug, info, warn, error)":    "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                 "全てのログ出力を抑制",
		"Save raw and composed frames while decoding": "デコード中の生フレームと合成フレームを保存",
		"Directory for debug output":                  "デバッグ出力のディレクトリ",

		// Decoding flags
		"Decode on demand through a bounded frame window": "上限付きフレームウィンドウでオンデマンドにデコード",
		"Frames kept in memory while streaming (0 = all)": "ストリーミング中にメモリに保持するフレーム数（0 = 全て）",

		// Output flags
		"Write a Markdown summary to this file":  "Markdown形式のサマリーをこのファイルに出力",
		"Output directory":                       "出力ディレクトリ",
		"Image format (png, jpeg)":               "画像形式（png, jpeg）",
		"JPEG quality (1-100)":                   "JPEG品質（1-100）",
		"Output scale factor":                    "出力の拡大率",
		"Also write the hidden default image":    "非表示のデフォルト画像も書き出す",
		"Parallel encoders (0 = number of CPUs)": "並列エンコーダー数（0 = CPU数）",
		"Output image path (.png or .jpg)":       "出力画像のパス（.png または .jpg）",

		// Contact sheet flags
		"Tiles per row":                          "1行あたりのタイル数",
		"Tile width in pixels (0 = frame width)": "タイルの幅（ピクセル、0 = フレーム幅）",
		"Background color (hex, e.g., #ffffff)":  "背景色（16進数、例: #ffffff）",
		"Hide frame index and delay labels":      "フレーム番号と表示時間のラベルを非表示",

		// Playback flags
		"Override the repeat count (-1 = forever)":   "繰り返し回数を上書き（-1 = 無限）",
		"Stop after this many frames (0 = no limit)": "指定フレーム数で停止（0 = 無制限）",

		// Runtime messages
		"Exactly one input file is required": "入力ファイルを1つ指定してください",
		"Failed to write summary: %s":        "サマリーの書き込みに失敗しました: %s",

		// Summary content
		"Animation Summary": "アニメーション概要",
		"Generated":         "生成日時",
		"Item":              "項目",
		"Value":             "値",
		"Source":            "ソース",
		"File":              "ファイル",
		"File Size":         "ファイルサイズ",
		"Image":             "画像",
		"Canvas":            "キャンバス",
		"Bit Depth":         "ビット深度",
		"Animated":          "アニメーション",
		"Frames":            "フレーム",
		"Default Image":     "デフォルト画像",
		"hidden":            "非表示",
		"Repeat":            "繰り返し",
		"Duration":          "再生時間",
		"Offset":            "位置",
		"Size":              "サイズ",
		"Delay":             "表示時間",
		"Dispose":           "破棄",
		"Blend":             "合成",
		"Decode":            "デコード",
		"Window":            "ウィンドウ",
		"Peak frames":       "最大保持フレーム数",
		"Restarts":          "再開回数",
		"Elapsed":           "所要時間",
		"infinite":          "無限",
		"yes":               "はい",
		"no":                "いいえ",
	})
}
