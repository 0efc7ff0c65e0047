package tuple

import "fmt"

// Iterator walks a fixed slice of tuples. Pages hand one of these out as
// their record cursor.
type Iterator struct {
	tuples []*Tuple
	index  int
	opened bool
}

func NewIterator(tuples []*Tuple) *Iterator {
	return &Iterator{
		tuples: tuples,
		index:  -1,
	}
}

func (it *Iterator) Open() error {
	it.opened = true
	it.index = -1
	return nil
}

func (it *Iterator) HasNext() (bool, error) {
	if !it.opened {
		return false, fmt.Errorf("iterator not opened")
	}
	return it.index+1 < len(it.tuples), nil
}

func (it *Iterator) Next() (*Tuple, error) {
	hasNext, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !hasNext {
		return nil, fmt.Errorf("no more tuples")
	}

	it.index++
	return it.tuples[it.index], nil
}

func (it *Iterator) Rewind() error {
	if !it.opened {
		return fmt.Errorf("iterator not opened")
	}
	it.index = -1
	return nil
}

func (it *Iterator) Close() error {
	it.opened = false
	it.tuples = nil
	return nil
}
