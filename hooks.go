package chirp8

// Hook is a callback attached to a point in the machine's frame loop.
type Hook func(m *Machine)

// AddBeforeFrameHook adds a hook that runs before every frame.
func (m *Machine) AddBeforeFrameHook(h Hook) int {
	m.beforeFrameHooks = append(m.beforeFrameHooks, h)

	return len(m.beforeFrameHooks)
}

// AddBeforeCycleHook adds a hook that runs before every cycle.
func (m *Machine) AddBeforeCycleHook(h Hook) int {
	m.beforeCycleHooks = append(m.beforeCycleHooks, h)

	return len(m.beforeCycleHooks)
}

// AddAfterCycleHook adds a hook that runs after every cycle.
func (m *Machine) AddAfterCycleHook(h Hook) int {
	m.afterCycleHooks = append(m.afterCycleHooks, h)

	return len(m.afterCycleHooks)
}

// AddAfterFrameHook adds a hook that runs after every frame.
func (m *Machine) AddAfterFrameHook(h Hook) int {
	m.afterFrameHooks = append(m.afterFrameHooks, h)

	return len(m.afterFrameHooks)
}

// AddErrorHook adds a hook that runs when the machine halts on a fault.
func (m *Machine) AddErrorHook(h Hook) int {
	m.errorHooks = append(m.errorHooks, h)

	return len(m.errorHooks)
}

func (m *Machine) runBeforeFrameHooks() { m.runHooks(m.beforeFrameHooks) }
func (m *Machine) runBeforeCycleHooks() { m.runHooks(m.beforeCycleHooks) }
func (m *Machine) runAfterCycleHooks()  { m.runHooks(m.afterCycleHooks) }
func (m *Machine) runAfterFrameHooks()  { m.runHooks(m.afterFrameHooks) }
func (m *Machine) runErrorHooks()       { m.runHooks(m.errorHooks) }

func (m *Machine) runHooks(hooks []Hook) {
	for _, h := range hooks {
		h(m)
	}
}
