package dot_test

import (
	"fmt"

	"github.com/matzehuels/valplot/pkg/plot"
	"github.com/matzehuels/valplot/pkg/plot/dot"
)

func ExampleEscape() {
	fmt.Println(dot.Escape(`{"a" | b}`))
	// Output:
	// \{\"a\" \| b\}
}

func ExampleMarshal() {
	d, err := plot.NewBuilder().Build(plot.Tuple{1, "x"})
	if err != nil {
		fmt.Println(err)
		return
	}
	src, err := dot.Marshal(d, dot.Options{Name: "pair"})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(string(src))
	// Output:
	// digraph "pair" {
	//   rankdir="TB";
	//   bgcolor="transparent";
	//   node [fontname="Helvetica"];
	//   "root._0" [label=" { { <_0.row.0> 1 | <_0.row.1> x } } ", shape="record"];
	// }
}
