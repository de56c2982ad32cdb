package ir

type (
	// Node is a handle to a list element. The zero Node is no node.
	Node int32

	// List is an ordered sequence of instructions backed by an arena.
	// Removed nodes stay in the arena as tombstones so handles never dangle.
	List struct {
		nodes []node

		head, tail Node
		len        int
	}

	node struct {
		in Instr

		prev, next Node
		live       bool
	}
)

func (l *List) Len() int { return l.len }

func (l *List) Front() Node { return l.head }
func (l *List) Back() Node  { return l.tail }

func (l *List) Next(n Node) Node { return l.at(n).next }
func (l *List) Prev(n Node) Node { return l.at(n).prev }

func (l *List) Get(n Node) Instr { return l.at(n).in }

func (l *List) Live(n Node) bool {
	return n > 0 && int(n) <= len(l.nodes) && l.nodes[n-1].live
}

// Set replaces the instruction held by n in place.
func (l *List) Set(n Node, in Instr) {
	l.at(n).in = in
}

func (l *List) Append(in Instr) Node {
	l.nodes = append(l.nodes, node{
		in:   in,
		prev: l.tail,
		live: true,
	})

	n := Node(len(l.nodes))

	if l.tail == 0 {
		l.head = n
	} else {
		l.at(l.tail).next = n
	}

	l.tail = n
	l.len++

	return n
}

func (l *List) Remove(n Node) error {
	if l.head == 0 {
		return Internal("remove from empty list")
	}

	if !l.Live(n) {
		return Internal("remove of dead node %d", n)
	}

	x := l.at(n)

	switch {
	case l.head == n && l.tail == n:
		l.head, l.tail = 0, 0
	case l.head == n:
		l.at(x.next).prev = 0
		l.head = x.next
	case l.tail == n:
		l.at(x.prev).next = 0
		l.tail = x.prev
	default:
		l.at(x.prev).next = x.next
		l.at(x.next).prev = x.prev
	}

	x.prev, x.next = 0, 0
	x.live = false

	l.len--

	return nil
}

// Instrs returns live instructions in order.
func (l *List) Instrs() []Instr {
	r := make([]Instr, 0, l.len)

	for n := l.head; n != 0; n = l.Next(n) {
		r = append(r, l.Get(n))
	}

	return r
}

// Nodes returns live node handles in order.
func (l *List) Nodes() []Node {
	r := make([]Node, 0, l.len)

	for n := l.head; n != 0; n = l.Next(n) {
		r = append(r, n)
	}

	return r
}

func (l *List) at(n Node) *node {
	return &l.nodes[n-1]
}
