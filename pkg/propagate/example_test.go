package propagate_test

import (
	"fmt"

	"github.com/matzehuels/infection/pkg/graph"
	"github.com/matzehuels/infection/pkg/propagate"
)

func ExampleEngine_PropagateAll() {
	// A mentor with two pupils, one of whom mentors a third student
	g := graph.New()
	coach := g.AddNamedNode("coach", 1.0)
	ann := g.AddNamedNode("ann", 1.0)
	bob := g.AddNamedNode("bob", 1.0)
	cat := g.AddNamedNode("cat", 1.0)
	g.Connect(coach, ann)
	g.Connect(coach, bob)
	g.Connect(bob, cat)

	res := propagate.New(g).PropagateAll(cat, 2.0)

	for _, id := range res.Infected {
		fmt.Println(g.Name(id), g.Version(id))
	}
	// Output:
	// cat 2
	// bob 2
	// coach 2
	// ann 2
}

func ExampleEngine_PropagateLimited() {
	// node 0 mentors 1..4
	g := graph.New()
	root := g.AddNode(1.0)
	for i := 0; i < 4; i++ {
		g.Connect(root, g.AddNode(1.0))
	}

	res := propagate.New(g).PropagateLimited(root, 2.0, 3)

	fmt.Println("Infected:", res.Infected)
	fmt.Println("Exhausted:", res.Exhausted)
	// Output:
	// Infected: [0 1 2]
	// Exhausted: true
}

func ExampleEngine_PropagateBoundedAtomic() {
	// A mentors B, C and D: the batch needs 4 units of budget
	g := graph.New()
	a := g.AddNamedNode("A", 1.0)
	for _, name := range []string{"B", "C", "D"} {
		g.Connect(a, g.AddNamedNode(name, 1.0))
	}
	e := propagate.New(g)

	tooSmall := e.PropagateBoundedAtomic(a, 2.0, 3)
	fmt.Println("budget 3:", tooSmall.Count(), "infected")

	enough := e.PropagateBoundedAtomic(a, 2.0, 4)
	fmt.Println("budget 4:", enough.Count(), "infected")
	// Output:
	// budget 3: 0 infected
	// budget 4: 4 infected
}
