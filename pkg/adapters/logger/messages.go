package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Orchestration level messages (info)
		"Decoding %dx%d image with %d frames":              "%dx%d の画像を %d フレームでデコード中",
		"Decoded %d frames":                                "%d フレームをデコードしました",
		"Streaming %dx%d image with %d frames, window %d": "%dx%d の画像を %d フレームでストリーミング中 (ウィンドウ %d)",
		"Interrupted, shutting down...":                    "中断されました。シャットダウン中...",
		"Wrote %d frames to %s":                            "%d フレームを %s に書き出しました",
		"Contact sheet saved to %s":                        "コンタクトシートを %s に保存しました",
		"Stream window %d held at most %d frames (%d restarts)": "ストリームウィンドウ %d: 最大 %d フレームを保持 (再開 %d 回)",
		"Summary saved to %s":                              "サマリーを %s に保存しました",
		"Played %d frames (%d loops) in %s":                "%d フレームを再生しました (%d ループ, %s)",

		// Decode components (debug)
		"Frame %d: %dx%d at (%d,%d), %s/%s, %v": "フレーム %d: %dx%d (%d,%d), %s/%s, %v",
		"Producer stopped at frame %d":          "フレーム %d でデコードを停止しました",
		"Restarting decode for frame %d":        "フレーム %d のためにデコードを再開します",
		"Decode failed at frame %d: %s":         "フレーム %d でデコードに失敗しました: %s",
		"Loop %d, wrapping to frame %d":         "ループ %d、フレーム %d に戻ります",
		"Presenting frame %d for %s":            "フレーム %d を %s 表示",

		// Export and sheet stages (debug)
		"Exporting %d frames with %d workers": "%d フレームを %d ワーカーで書き出し中",
		"Export completed":                    "書き出しが完了しました",
		"Rendering %d frames on a %dx%d sheet (%d columns, %d rows)": "%d フレームを %dx%d のシートに描画中 (%d 列, %d 行)",

		// Warnings
		"Failed to save debug output: %s": "デバッグ出力の保存に失敗しました: %s",

		// Errors
		"Failed to read header: %s":         "ヘッダーの読み込みに失敗しました: %s",
		"Failed to decode frame %d: %s":     "フレーム %d のデコードに失敗しました: %s",
		"Failed to load config: %s":         "設定の読み込みに失敗しました: %s",
		"Invalid configuration: %s":         "設定が不正です: %s",
		"Failed to read %s: %s":             "%s の読み込みに失敗しました: %s",
		"Failed to export frames: %s":       "フレームの書き出しに失敗しました: %s",
		"Failed to render contact sheet: %s": "コンタクトシートの描画に失敗しました: %s",
		"Playback stopped: %s":              "再生が停止しました: %s",
	})
}
