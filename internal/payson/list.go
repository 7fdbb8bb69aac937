package payson

import "fmt"

// indexedList names a repeated record on the wire, e.g.
// receiverList.receiver(0).email. Entries are numbered from 0 and a list
// ends at the first index whose anchor field is absent; there is no count.
type indexedList struct {
	list   string
	item   string
	anchor string
}

var (
	receiverList = indexedList{list: "receiverList", item: "receiver", anchor: "email"}
	errorList    = indexedList{list: "errorList", item: "error", anchor: "errorId"}
	fundingList  = indexedList{list: "fundingList", item: "fundingConstraint", anchor: "constraint"}
	// The API reference never shows an order item list in a response. The
	// description anchor mirrors receivers and is unconfirmed.
	orderItemList = indexedList{list: "orderItemList", item: "orderItem", anchor: "description"}
)

func (l indexedList) key(i int, field string) string {
	return fmt.Sprintf("%s.%s(%d).%s", l.list, l.item, i, field)
}

// entry binds the fields of one list element.
type entry struct {
	f Fields
	l indexedList
	i int
}

func (e entry) key(field string) string { return e.l.key(e.i, field) }

func (e entry) get(field string) string { return e.f[e.key(field)] }

func (l indexedList) at(f Fields, i int) entry {
	return entry{f: f, l: l, i: i}
}

// len counts contiguous entries starting at index 0.
func (l indexedList) len(f Fields) int {
	n := 0
	for f.Has(l.key(n, l.anchor)) {
		n++
	}
	return n
}

func encodeList[T any](f Fields, l indexedList, items []T, encode func(entry, T) error) error {
	for i, item := range items {
		if err := encode(l.at(f, i), item); err != nil {
			return err
		}
	}
	return nil
}

func decodeList[T any](f Fields, l indexedList, decode func(entry) (T, error)) ([]T, error) {
	n := l.len(f)
	if n == 0 {
		return nil, nil
	}

	items := make([]T, 0, n)
	for i := 0; i < n; i++ {
		item, err := decode(l.at(f, i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
