package mealplan

import "strings"

// TagSet 有序且不重複的自由文字集合，比對區分大小寫
type TagSet []string

// Add 加入修剪後的 tag，空字串或重複時不做任何事
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" || s.Contains(tag) {
		return false
	}
	*s = append(*s, tag)
	return true
}

// Remove 移除指定位置，其餘元素保持原順序
func (s *TagSet) Remove(index int) bool {
	if index < 0 || index >= len(*s) {
		return false
	}
	next := make(TagSet, 0, len(*s)-1)
	next = append(next, (*s)[:index]...)
	next = append(next, (*s)[index+1:]...)
	*s = next
	return true
}

// RemoveLast 移除最後加入的 tag，空集合時不做任何事
func (s *TagSet) RemoveLast() bool {
	return s.Remove(len(*s) - 1)
}

// Toggle 快速選取：已存在就移除，否則加入
func (s *TagSet) Toggle(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for i, existing := range *s {
		if existing == tag {
			return s.Remove(i)
		}
	}
	return s.Add(tag)
}

// Contains 精確比對
func (s TagSet) Contains(tag string) bool {
	for _, existing := range s {
		if existing == tag {
			return true
		}
	}
	return false
}

// Len 元素數量
func (s TagSet) Len() int {
	return len(s)
}

// Clone 複製底層陣列
func (s TagSet) Clone() TagSet {
	out := make(TagSet, len(s))
	copy(out, s)
	return out
}
