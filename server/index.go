package server

const indexPage = `<!DOCTYPE html>
<html>
	<head>
		<link rel="icon" href="/favicon.ico" />
		<title>Fractals</title>
	</head>
	<body>
		<p><a href="mandelbrot?center_x=-0.75&amp;center_y=0&amp;width=1024&amp;height=1024&amp;scale=0.35&amp;palette_scale=3">mandelbrot example</a></p>
		<p><a href="mandelbrot?center_x=0.0016&amp;center_y=-0.8225&amp;width=512&amp;height=512&amp;scale=3200">another mandelbrot example</a></p>
		<p><a href="checkerboard?center_x=0.5&amp;center_y=-0.333&amp;width=512&amp;height=512&amp;scale=64">checkerboard</a></p>
	</body>
</html>
`
