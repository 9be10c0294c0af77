package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func confirmed(id, sender, content string) Message {
	return Message{ID: id, SenderID: sender, Content: content}
}

func pending(tempID, sender, content string) Message {
	return Message{TempID: tempID, SenderID: sender, Content: content, Status: StatusSending}
}

func timelineContents(c *Cache) []string {
	var out []string
	for _, m := range c.Timeline() {
		out = append(out, m.Content)
	}
	return out
}

func TestTimelineFlattensPagesNewestFirstPageLast(t *testing.T) {
	// Page 0 is the newest page; older pages sit behind it. The timeline
	// must read oldest to newest regardless of fetch order.
	c := NewCache(Page{Messages: []Message{confirmed("m3", "u1", "c"), confirmed("m4", "u1", "d")}, NextCursor: "m3"})
	c = AppendOlderPage(c, Page{Messages: []Message{confirmed("m1", "u1", "a"), confirmed("m2", "u1", "b")}})

	require.Equal(t, []string{"a", "b", "c", "d"}, timelineContents(c))
}

func TestTimelineNilCache(t *testing.T) {
	var c *Cache
	require.Nil(t, c.Timeline())
	require.Empty(t, c.NextCursor())
	require.False(t, c.HasOlder())
}

func TestAppendTargetsNewestPage(t *testing.T) {
	c := NewCache(Page{Messages: []Message{confirmed("m2", "u1", "b")}})
	c = AppendOlderPage(c, Page{Messages: []Message{confirmed("m1", "u1", "a")}})

	c = Append(c, confirmed("m3", "u2", "c"))

	require.Equal(t, []string{"a", "b", "c"}, timelineContents(c))
	require.Equal(t, "m3", c.Pages[0].Messages[len(c.Pages[0].Messages)-1].ID)
}

func TestAppendNilCacheCreatesSinglePage(t *testing.T) {
	c := Append(nil, confirmed("m1", "u1", "a"))
	require.Len(t, c.Pages, 1)
	require.Equal(t, []string{"a"}, timelineContents(c))
}

func TestAppendDedupsByServerID(t *testing.T) {
	c := NewCache(Page{Messages: []Message{confirmed("m1", "u1", "a")}})

	same := c
	c = Append(c, confirmed("m1", "u1", "a"))
	require.Same(t, same, c, "duplicate id must be a no-op")

	// Identical content under a different id is a distinct message.
	c = Append(c, confirmed("m2", "u1", "a"))
	require.Equal(t, []string{"a", "a"}, timelineContents(c))
}

func TestAppendNeverDedupsProvisionals(t *testing.T) {
	c := NewCache(Page{})
	c = Append(c, pending("t1", "u1", "hello"))
	c = Append(c, pending("t2", "u1", "hello"))

	require.Len(t, c.Timeline(), 2)
}

func TestAppendReturnsFreshCacheOnChange(t *testing.T) {
	c := NewCache(Page{Messages: []Message{confirmed("m1", "u1", "a")}})
	next := Append(c, confirmed("m2", "u1", "b"))

	require.NotSame(t, c, next)
	// The original value is untouched.
	require.Equal(t, []string{"a"}, timelineContents(c))
}

func TestNextCursorComesFromOldestPage(t *testing.T) {
	c := NewCache(Page{Messages: []Message{confirmed("m3", "u1", "c")}, NextCursor: "m3"})
	require.Equal(t, "m3", c.NextCursor())
	require.True(t, c.HasOlder())

	// A short oldest page ends pagination.
	c = AppendOlderPage(c, Page{Messages: []Message{confirmed("m1", "u1", "a")}})
	require.Empty(t, c.NextCursor())
	require.False(t, c.HasOlder())
}

func TestReplacePendingSwapsInConfirmed(t *testing.T) {
	c := NewCache(Page{})
	c = Append(c, pending("t1", "u1", "hello"))

	c = ReplacePending(c, "t1", confirmed("m9", "u1", "hello"))

	tl := c.Timeline()
	require.Len(t, tl, 1)
	require.Equal(t, "m9", tl[0].ID)
	require.Empty(t, tl[0].TempID)
	require.Equal(t, StatusSent, tl[0].Status)
}

func TestReplacePendingAbsentTempIDIsNoop(t *testing.T) {
	c := NewCache(Page{Messages: []Message{confirmed("m1", "u1", "a")}})
	require.Same(t, c, ReplacePending(c, "t-gone", confirmed("m2", "u1", "b")))
}

func TestSetStatusMarksFailed(t *testing.T) {
	c := NewCache(Page{})
	c = Append(c, pending("t1", "u1", "hello"))

	c = SetStatus(c, "t1", StatusFailed)

	tl := c.Timeline()
	require.Equal(t, StatusFailed, tl[0].Status)
	require.Equal(t, "t1", tl[0].TempID, "temp id survives the failure for retry")

	require.Same(t, c, SetStatus(c, "t-gone", StatusFailed))
}

func TestRemovePending(t *testing.T) {
	c := NewCache(Page{Messages: []Message{confirmed("m1", "u1", "a")}})
	c = Append(c, pending("t1", "u1", "hello"))

	c = RemovePending(c, "t1")
	require.Equal(t, []string{"a"}, timelineContents(c))

	require.Same(t, c, RemovePending(c, "t1"))
}

func TestFindPendingByContentFirstMatchWins(t *testing.T) {
	c := NewCache(Page{})
	c = Append(c, pending("t1", "u1", "hello"))
	c = Append(c, pending("t2", "u1", "hello"))

	tempID, ok := FindPendingByContent(c, "u1", "hello")
	require.True(t, ok)
	require.Equal(t, "t1", tempID)
}

func TestFindPendingByContentIgnoresNonMatches(t *testing.T) {
	c := NewCache(Page{})
	c = Append(c, pending("t1", "u1", "hello"))
	c = SetStatus(c, "t1", StatusFailed)
	c = Append(c, confirmed("m1", "u2", "hello"))

	// Failed sends and other senders never match.
	_, ok := FindPendingByContent(c, "u1", "hello")
	require.False(t, ok)
	_, ok = FindPendingByContent(c, "u2", "hello")
	require.False(t, ok)
}

func TestEffectiveStatusDefaultsToSent(t *testing.T) {
	require.Equal(t, StatusSent, confirmed("m1", "u1", "a").EffectiveStatus())
	require.Equal(t, StatusSending, pending("t1", "u1", "a").EffectiveStatus())
}

func TestDisplayIDPrefersServerID(t *testing.T) {
	require.Equal(t, "m1", Message{ID: "m1", TempID: "t1"}.DisplayID())
	require.Equal(t, "t1", Message{TempID: "t1"}.DisplayID())
}
