//-------------------------------------------------------------------------
//
// pgEdge Retail Stats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package analytics

import (
	"strings"
)

// Region is one entry of the canonical prefecture enumeration.
type Region struct {
	Code   int    `json:"code"`
	Name   string `json:"name"`
	Romaji string `json:"romaji"`
}

// prefectures lists the 47 prefectures in JIS X 0401 order, which is the
// order every area summary follows.
var prefectures = []Region{
	{1, "北海道", "hokkaido"},
	{2, "青森県", "aomori"},
	{3, "岩手県", "iwate"},
	{4, "宮城県", "miyagi"},
	{5, "秋田県", "akita"},
	{6, "山形県", "yamagata"},
	{7, "福島県", "fukushima"},
	{8, "茨城県", "ibaraki"},
	{9, "栃木県", "tochigi"},
	{10, "群馬県", "gunma"},
	{11, "埼玉県", "saitama"},
	{12, "千葉県", "chiba"},
	{13, "東京都", "tokyo"},
	{14, "神奈川県", "kanagawa"},
	{15, "新潟県", "niigata"},
	{16, "富山県", "toyama"},
	{17, "石川県", "ishikawa"},
	{18, "福井県", "fukui"},
	{19, "山梨県", "yamanashi"},
	{20, "長野県", "nagano"},
	{21, "岐阜県", "gifu"},
	{22, "静岡県", "shizuoka"},
	{23, "愛知県", "aichi"},
	{24, "三重県", "mie"},
	{25, "滋賀県", "shiga"},
	{26, "京都府", "kyoto"},
	{27, "大阪府", "osaka"},
	{28, "兵庫県", "hyogo"},
	{29, "奈良県", "nara"},
	{30, "和歌山県", "wakayama"},
	{31, "鳥取県", "tottori"},
	{32, "島根県", "shimane"},
	{33, "岡山県", "okayama"},
	{34, "広島県", "hiroshima"},
	{35, "山口県", "yamaguchi"},
	{36, "徳島県", "tokushima"},
	{37, "香川県", "kagawa"},
	{38, "愛媛県", "ehime"},
	{39, "高知県", "kochi"},
	{40, "福岡県", "fukuoka"},
	{41, "佐賀県", "saga"},
	{42, "長崎県", "nagasaki"},
	{43, "熊本県", "kumamoto"},
	{44, "大分県", "oita"},
	{45, "宮崎県", "miyazaki"},
	{46, "鹿児島県", "kagoshima"},
	{47, "沖縄県", "okinawa"},
}

// regionIndex maps every accepted spelling of a prefecture to its position
// in prefectures.
var regionIndex = buildRegionIndex()

func buildRegionIndex() map[string]int {
	idx := make(map[string]int, len(prefectures)*4)
	for i, p := range prefectures {
		idx[p.Name] = i
		idx[p.Romaji] = i
		idx[p.Romaji+"-ken"] = i

		// 東京都 -> 東京, 京都府 -> 京都; 北海道 keeps its full name
		for _, suffix := range []string{"都", "府", "県"} {
			if short, ok := strings.CutSuffix(p.Name, suffix); ok {
				idx[short] = i
				break
			}
		}
	}
	idx["hokkaidou"] = 0
	idx["tokyo-to"] = 12
	idx["kyoto-fu"] = 25
	idx["osaka-fu"] = 26
	return idx
}

// Regions returns the canonical prefecture enumeration in order.
func Regions() []Region {
	return append([]Region(nil), prefectures...)
}

// RegionRank returns the ordinal of an area in the canonical order.
func RegionRank(area string) (int, bool) {
	i, ok := regionIndex[foldArea(area)]
	return i, ok
}

// CanonicalArea returns the canonical prefecture name for any accepted
// spelling, or the trimmed input when the area is not a prefecture.
func CanonicalArea(area string) string {
	if i, ok := RegionRank(area); ok {
		return prefectures[i].Name
	}
	return strings.TrimSpace(area)
}

func foldArea(area string) string {
	return strings.ToLower(strings.TrimSpace(area))
}
