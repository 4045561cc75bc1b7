package proctree_test

import (
	"context"
	"fmt"
	"log"

	"github.com/petrijr/proctree"
)

// Example_taskBuilder demonstrates defining a task with the TaskBuilder API
// and executing it on an Executor.
func Example_taskBuilder() {
	ctx := context.Background()

	task := proctree.NewTask("Compute").
		Calculator(proctree.ClassConstant, "two", proctree.Prop("value", 2)).
		Calculator(proctree.ClassConstant, "three", proctree.Prop("value", 3)).
		Calculator(proctree.ClassSum, "sum").
		Connect("two", "output", "sum", "a").
		Connect("three", "output", "sum", "b").
		MustBuild()

	exec := proctree.NewExecutor()
	if err := exec.Run(task); err != nil {
		log.Fatal(err)
	}
	if _, err := exec.ProcessOne(ctx); err != nil {
		log.Fatal(err)
	}

	sum, _ := task.ChildByName("sum").Property("output")
	fmt.Printf("%s finished as %s with sum %v\n", task.Name(), task.State(), sum)

	// Output:
	// Compute finished as FINISHED with sum 5
}

// Example_copyPaste demonstrates that copying a nested task keeps the
// connections inside it and reports the ones that cross its boundary.
func Example_copyPaste() {
	ctx := context.Background()

	group := proctree.NewGroup("project")
	err := proctree.NewTask("Main").
		Calculator(proctree.ClassConstant, "seed", proctree.Prop("value", 1)).
		Task(proctree.NewTask("Stage").
			Calculator(proctree.ClassConstant, "a", proctree.Prop("value", 2)).
			Calculator(proctree.ClassSum, "b").
			Connect("a", "output", "b", "a")).
		Connect("seed", "output", "Stage/b", "b").
		AddTo(group)
	if err != nil {
		log.Fatal(err)
	}
	if err := proctree.NewTask("Other").AddTo(group); err != nil {
		log.Fatal(err)
	}

	ed := proctree.NewEditor(proctree.EditorConfig{Factory: proctree.NewRegistry()})

	res, err := ed.Copy(ctx, group.ChildByName("Main").ChildByName("Stage"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("lost on copy:", len(res.Diagnostics))

	res, err = ed.Paste(ctx, group.ChildByName("Other"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("pasted:", res.Node.Path())
	fmt.Println("connections kept:", len(group.ChildByName("Other").Connections()))

	// Output:
	// lost on copy: 1
	// pasted: Other/Stage
	// connections kept: 1
}
